package quote

import (
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/quote/repository"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/quote/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quote.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
