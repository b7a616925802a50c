package documents

import (
	"context"
	"errors"

	"github.com/rezonia/rechnung/internal/model"
	"github.com/rezonia/rechnung/internal/store"
)

var errNoService = errors.New("no document service configured")

// Unconfigured is the DocumentService used when no renderer URL is set.
// Every call fails with an upstream error.
type Unconfigured struct{}

func (Unconfigured) RenderXML(_ context.Context, _ *model.Invoice) ([]byte, error) {
	return nil, model.NewUpstreamError("RenderXML", errNoService)
}

func (Unconfigured) RenderPDF(_ context.Context, _ *model.Invoice) ([]byte, error) {
	return nil, model.NewUpstreamError("RenderPDF", errNoService)
}

func (Unconfigured) SendEmail(_ context.Context, _ *model.Invoice, _ string) (*store.EmailResult, error) {
	return nil, model.NewUpstreamError("SendEmail", errNoService)
}

func (Unconfigured) Validate(_ context.Context, _ *model.Invoice) (*store.ValidationResult, error) {
	return nil, model.NewUpstreamError("Validate", errNoService)
}

var _ store.DocumentService = Unconfigured{}
