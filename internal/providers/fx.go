package providers

import (
	"github.com/smallbiznis/cantina/internal/providers/email"
	"github.com/smallbiznis/cantina/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
)
