package paymentlink

import (
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/paymentlink/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("paymentlink",
	fx.Provide(repository.Provide),
)
