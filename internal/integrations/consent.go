package integrations

import (
	"context"
	"slices"
	"strings"
)

// GraphPermissions are the Microsoft Graph application permissions the
// SharePoint connector asks the tenant admin to consent to.
var GraphPermissions = []string{
	"Sites.Read.All",
	"Files.Read.All",
	"User.Read.All",
	"Group.Read.All",
	"Directory.Read.All",
}

type ConsentStatus string

const (
	ConsentPending ConsentStatus = "pending"
	ConsentGranted ConsentStatus = "granted"
	ConsentError   ConsentStatus = "error"
)

type PermissionGrant struct {
	Name    string `json:"name"`
	Granted bool   `json:"granted"`
}

type ConsentResult struct {
	Status      ConsentStatus     `json:"status"`
	TenantID    string            `json:"tenantId,omitempty"`
	Permissions []PermissionGrant `json:"permissions"`
	Message     string            `json:"message"`
}

func (r ConsentResult) Granted() bool { return r.Status == ConsentGranted }

// ConsentVerifier checks whether admin consent was granted for a tenant.
type ConsentVerifier interface {
	VerifyConsent(ctx context.Context, tenantID string) (ConsentResult, error)
}

// StaticConsent answers from a fixed set of granted permissions. No tenant is
// contacted.
type StaticConsent struct {
	Granted []string
}

// GrantAll returns a StaticConsent that grants every Graph permission.
func GrantAll() StaticConsent {
	return StaticConsent{Granted: slices.Clone(GraphPermissions)}
}

func (s StaticConsent) VerifyConsent(ctx context.Context, tenantID string) (ConsentResult, error) {
	if err := ctx.Err(); err != nil {
		return ConsentResult{}, err
	}
	res := ConsentResult{TenantID: strings.TrimSpace(tenantID), Status: ConsentGranted}
	var missing []string
	for _, p := range GraphPermissions {
		ok := slices.Contains(s.Granted, p)
		res.Permissions = append(res.Permissions, PermissionGrant{Name: p, Granted: ok})
		if !ok {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		res.Status = ConsentError
		res.Message = "Admin consent missing for: " + strings.Join(missing, ", ")
		return res, nil
	}
	res.Message = "Admin consent verified successfully"
	return res, nil
}

type Site struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	URL       string `json:"url" yaml:"url"`
	Type      string `json:"type" yaml:"type"`
	FileCount int    `json:"fileCount" yaml:"fileCount"`
}

// SiteLister discovers SharePoint sites in a tenant.
type SiteLister interface {
	ListSites(ctx context.Context) ([]Site, error)
}

type StaticSites []Site

func (s StaticSites) ListSites(ctx context.Context) ([]Site, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone([]Site(s)), nil
}

// SiteScope reports whether the selection covers every known site.
func SiteScope(selected []string, all []Site) string {
	if len(selected) == 0 {
		return "none"
	}
	for _, site := range all {
		if !slices.Contains(selected, site.ID) {
			return "selected"
		}
	}
	return "all"
}
