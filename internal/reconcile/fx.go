package reconcile

import (
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/reconcile/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reconcile",
	fx.Provide(service.NewService),
)
