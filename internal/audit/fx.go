package audit

import (
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(service.NewService),
)
