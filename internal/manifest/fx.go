package manifest

import (
	"github.com/costmgmt/koku/internal/manifest/repository"
	"github.com/costmgmt/koku/internal/manifest/service"
	"go.uber.org/fx"
)

var Module = fx.Module("manifest",
	fx.Provide(
		repository.Provide,
		service.NewService,
	),
)
