package subscription

import (
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/subscription/repository"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
