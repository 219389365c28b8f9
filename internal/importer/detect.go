package importer

import (
	"strings"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/tagscan"
)

// DefaultDetectPrefix is how much of a document the detector inspects.
const DefaultDetectPrefix = 64 << 10

const (
	camtNamespace = "urn:iso:std:iso:20022:tech:xsd:camt.053"
	camtRoot      = "BkToCstmrStmt"
)

var swiftMarkers = []string{":20:", ":60F:"}

// Detector classifies a normalized document by content sniffing.
type Detector struct {
	Dialects    DialectTable // national markers; zero value uses DefaultDialects
	PrefixBytes int          // zero uses DefaultDetectPrefix
}

// Detect classifies normalized with the default dialect table and prefix.
func Detect(normalized string) model.Format {
	return Detector{}.Detect(normalized)
}

// Detect applies the ordered marker checks: camt.053 namespace or root,
// then the MT940 :20: and :60F: fields, then any national dialect marker.
func (d Detector) Detect(normalized string) model.Format {
	limit := d.PrefixBytes
	if limit <= 0 {
		limit = DefaultDetectPrefix
	}
	doc := normalized
	if len(doc) > limit {
		doc = doc[:limit]
	}

	if strings.Contains(doc, camtNamespace) || tagscan.HasTag(doc, camtRoot) {
		return model.FormatISO20022
	}
	if containsAll(doc, swiftMarkers) {
		return model.FormatSWIFT
	}

	markers := d.Dialects.Markers
	if d.Dialects.empty() {
		markers = DefaultDialects().Markers
	}
	for _, m := range markers {
		if tagscan.HasTag(doc, m) {
			return model.FormatNational
		}
	}
	return model.FormatUnknown
}

func containsAll(text string, needles []string) bool {
	for _, n := range needles {
		if !strings.Contains(text, n) {
			return false
		}
	}
	return true
}
