package providerconfig

import (
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/providerconfig/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("providerconfig",
	fx.Provide(repository.Provide),
	fx.Provide(NewCodec),
)
