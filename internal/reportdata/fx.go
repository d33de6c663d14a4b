package reportdata

import (
	"github.com/costmgmt/koku/internal/reportdata/repository"
	"github.com/costmgmt/koku/internal/reportdata/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reportdata",
	fx.Provide(
		repository.Provide,
		service.NewCleaner,
	),
)
