package uniprot

import (
	"net/http"

	"go.trai.ch/protanno/internal/core/domain"
)

// NewClientWithHTTP exposes newClientWithHTTP for testing.
func NewClientWithHTTP(s domain.SourceSettings, hc *http.Client) *Client {
	return newClientWithHTTP(s, hc)
}
