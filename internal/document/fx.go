package document

import (
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("document",
	fx.Provide(func(cfg config.Config) LogoProvider {
		return NewFileLogoProvider(cfg.DocumentDir)
	}),
	fx.Provide(func(log *zap.Logger, logos LogoProvider, cfg config.Config) (Generator, error) {
		return NewHTMLGenerator(log, logos, cfg.DocumentDir)
	}),
)
