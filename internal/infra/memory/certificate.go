package memory

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"coursedeck-service/internal/domain"
)

// CertificateRenderer produces a completion certificate as an inline SVG
// data URI, so it can be stored on the enrollment and rendered anywhere.
type CertificateRenderer struct {
	clock func() time.Time
}

func NewCertificateRenderer() *CertificateRenderer {
	return &CertificateRenderer{clock: time.Now}
}

const certificateSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="800" height="600">
  <rect width="800" height="600" fill="#fffdf5" stroke="#b8860b" stroke-width="12"/>
  <text x="400" y="160" text-anchor="middle" font-size="40" font-family="serif">Certificate of Completion</text>
  <text x="400" y="280" text-anchor="middle" font-size="32" font-family="serif">%s</text>
  <text x="400" y="360" text-anchor="middle" font-size="24" font-family="serif">has completed the course</text>
  <text x="400" y="420" text-anchor="middle" font-size="28" font-family="serif">%s</text>
  <text x="400" y="520" text-anchor="middle" font-size="18" font-family="serif">%s</text>
</svg>`

func (r *CertificateRenderer) Render(_ context.Context, userName string, course domain.Course) (string, error) {
	svg := fmt.Sprintf(certificateSVG, userName, course.Title, r.clock().Format("January 2, 2006"))
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg)), nil
}
