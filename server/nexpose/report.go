// Package nexpose builds the XML request payloads the scanner console's
// report-generation API expects.
package nexpose

import (
	"encoding/json"
	"os"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ReportRequest mirrors the JSON report templates under the payloads
// directory. Zero values are filled with the console defaults by
// BuildReportSaveRequest.
type ReportRequest struct {
	SessionID   string       `json:"session_id"`
	GenerateNow string       `json:"generate_now"`
	Config      ReportConfig `json:"report_config"`
}

// ReportConfig is the report_config section of a template.
type ReportConfig struct {
	ID       string         `json:"id"`
	Format   string         `json:"format"`
	Name     string         `json:"name"`
	Filters  ReportFilters  `json:"filters"`
	Generate ReportGenerate `json:"generate"`
	Delivery ReportDelivery `json:"delivery"`
}

// ReportFilters restricts the report to one site and one policy.
type ReportFilters struct {
	SiteID          string `json:"site_id"`
	PolicyNaturalID string `json:"policy_natural_id"`
}

// ReportGenerate controls when the console generates the report.
type ReportGenerate struct {
	AfterScan string `json:"after_scan"`
	Schedule  string `json:"schedule"`
}

// ReportDelivery controls where the generated report is stored.
type ReportDelivery struct {
	StoreOnServer string `json:"store_on_server"`
}

// LoadReportRequest reads a JSON report template.
func LoadReportRequest(path string) (ReportRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ReportRequest{}, errors.Wrapf(err, "read report template %s", path)
	}
	var req ReportRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return ReportRequest{}, errors.Wrapf(err, "decode report template %s", path)
	}
	return req, nil
}

// Apply overlays the per-run parameters onto a template. An empty name gets
// a unique default so repeated runs never collide on the console.
func (r *ReportRequest) Apply(sessionID, siteID, policyNaturalID, name string) {
	r.SessionID = sessionID
	if name == "" {
		name = "xccdf-report-" + uuid.NewString()
	}
	r.Config.Name = name
	r.Config.Filters.SiteID = siteID
	r.Config.Filters.PolicyNaturalID = policyNaturalID
}

// BuildReportSaveRequest renders the ReportSaveRequest XML document for the
// console's report API.
func BuildReportSaveRequest(req ReportRequest) (string, error) {
	req.applyDefaults()

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("ReportSaveRequest")
	root.CreateAttr("session-id", req.SessionID)
	root.CreateAttr("generate-now", req.GenerateNow)

	cfg := root.CreateElement("ReportConfig")
	cfg.CreateAttr("id", req.Config.ID)
	cfg.CreateAttr("format", req.Config.Format)
	cfg.CreateAttr("name", req.Config.Name)

	filters := cfg.CreateElement("Filters")
	site := filters.CreateElement("filter")
	site.CreateAttr("type", "site")
	site.CreateAttr("id", req.Config.Filters.SiteID)
	site.SetText(req.Config.Filters.SiteID)
	policy := filters.CreateElement("filter")
	policy.CreateAttr("type", "policy-listing")
	policy.CreateAttr("id", req.Config.Filters.PolicyNaturalID)
	policy.SetText(req.Config.Filters.PolicyNaturalID)

	generate := cfg.CreateElement("Generate")
	generate.CreateAttr("after-scan", req.Config.Generate.AfterScan)
	generate.CreateAttr("schedule", req.Config.Generate.Schedule)

	storage := cfg.CreateElement("Delivery").CreateElement("Storage")
	storage.CreateAttr("storeOnServer", req.Config.Delivery.StoreOnServer)

	out, err := doc.WriteToString()
	if err != nil {
		return "", errors.Wrap(err, "serialize ReportSaveRequest")
	}
	return out, nil
}

// applyDefaults fills the console defaults for fields the template left
// empty.
func (r *ReportRequest) applyDefaults() {
	if r.GenerateNow == "" {
		r.GenerateNow = "1"
	}
	if r.Config.ID == "" {
		r.Config.ID = "-1"
	}
	if r.Config.Format == "" {
		r.Config.Format = "xccdf-xml"
	}
	if r.Config.Generate.AfterScan == "" {
		r.Config.Generate.AfterScan = "0"
	}
	if r.Config.Generate.Schedule == "" {
		r.Config.Generate.Schedule = "0"
	}
	if r.Config.Delivery.StoreOnServer == "" {
		r.Config.Delivery.StoreOnServer = "1"
	}
}
