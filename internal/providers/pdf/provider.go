// Package pdf renders invoice documents.
package pdf

import (
	"bytes"
	"context"
	"io"

	"go.uber.org/fx"
)

type Provider interface {
	GenerateInvoice(ctx context.Context, data InvoiceData) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateInvoice(ctx context.Context, data InvoiceData) (io.Reader, error) {
	return bytes.NewReader(nil), nil
}

// Module wires the maroto-backed PDF provider.
var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)
