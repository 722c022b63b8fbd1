// Package xmlfmt pretty-prints XML documents.
package xmlfmt

import (
	"fmt"
	"os"
	"strings"

	"github.com/beevik/etree"
)

const indentSpaces = 4

// Format re-indents an XML document with four-space indentation, dropping
// the XML declaration and any blank lines.
func Format(xml string) (string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		return "", fmt.Errorf("parse XML: %w", err)
	}

	var procInsts []*etree.ProcInst
	for _, child := range doc.Child {
		if pi, ok := child.(*etree.ProcInst); ok {
			procInsts = append(procInsts, pi)
		}
	}
	for _, pi := range procInsts {
		doc.RemoveChild(pi)
	}

	doc.Indent(indentSpaces)
	out, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("serialize XML: %w", err)
	}

	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// FormatFile reads an XML file, formats it, and writes the result to
// outPath.
func FormatFile(inPath, outPath string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", inPath, err)
	}
	formatted, err := Format(string(data))
	if err != nil {
		return fmt.Errorf("format %s: %w", inPath, err)
	}
	if err := os.WriteFile(outPath, []byte(formatted), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	return nil
}
