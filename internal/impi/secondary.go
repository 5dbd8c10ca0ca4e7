package impi

import (
	"context"

	"github.com/sirupsen/logrus"
)

const defaultSecondaryURL = "https://siga.impi.gob.mx/newSIGA/content/common/principal.jsf"

// SecondaryClient is the fallback prober for the SIGA public search. SIGA only offers a
// JSF flow, so every probe is reported as requiring manual review.
type SecondaryClient struct {
	url string
}

// NewSecondaryClient returns a stub client for the SIGA site.
func NewSecondaryClient(url string) *SecondaryClient {
	return &SecondaryClient{url: firstNonEmpty(url, defaultSecondaryURL)}
}

// Probe always answers OutcomeManualReview.
// TODO: drive the SIGA JSF search once its form field ids are mapped.
func (c *SecondaryClient) Probe(ctx context.Context, brand string) Outcome {
	logrus.WithFields(logrus.Fields{
		"brand": brand,
		"site":  c.url,
	}).Info("secondary registry lookup requires manual review")
	return OutcomeManualReview
}
