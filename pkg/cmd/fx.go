package cmd

import "go.uber.org/fx"

var Module = fx.Module("cli",
	fx.Provide(
		fx.Annotate(addFile, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(addFolder, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(initCmd, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(show, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(tokenizeCmd, fx.ResultTags(`group:"commands"`)),
	),
	fx.Invoke(Run),
)
