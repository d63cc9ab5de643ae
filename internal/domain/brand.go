package domain

import (
	"encoding/base64"
	"strings"
)

// Brand asset sources, in fallback order.
const (
	BrandSourceBundled     = "bundled"
	BrandSourcePublic      = "public"
	BrandSourcePlaceholder = "placeholder"
)

// BrandAsset is the image embedded in document headers.
type BrandAsset struct {
	MIMEType    string `json:"mime_type"`
	Data        []byte `json:"-"`
	Source      string `json:"source"`
	Placeholder bool   `json:"placeholder"`
}

// Valid reports whether the asset is a non-empty image.
func (a BrandAsset) Valid() bool {
	return len(a.Data) > 0 && strings.HasPrefix(a.MIMEType, "image/")
}

// DataURI returns the asset as an embeddable data: URI.
func (a BrandAsset) DataURI() string {
	return "data:" + a.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}

// CompanyIdentity is the centered identity block of the document header.
type CompanyIdentity struct {
	Name    string `json:"name"`
	Tagline string `json:"tagline"`
	Address string `json:"address"`
}

// Wordmark splits the company name into the two lines of the placeholder logo:
// "PRIME Insurance" becomes "PRIME" / "INSURANCE".
func (c CompanyIdentity) Wordmark() (string, string) {
	fields := strings.Fields(c.Name)
	switch len(fields) {
	case 0:
		return "PRIME", "INSURANCE"
	case 1:
		return strings.ToUpper(fields[0]), ""
	default:
		return strings.ToUpper(fields[0]), strings.ToUpper(strings.Join(fields[1:], " "))
	}
}
