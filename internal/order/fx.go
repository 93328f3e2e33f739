package order

import (
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/order/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("order",
	fx.Provide(repository.Provide),
)
