package deal

import (
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/deal/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("deal",
	fx.Provide(repository.Provide),
)
