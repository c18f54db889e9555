package project

import "go.uber.org/fx"

// Module provides the project rooted at the working directory. The root is
// resolved lazily so a --dir flag handled after startup is honoured.
var Module = fx.Module("project", fx.Provide(
	func() *Project {
		return New(".")
	},
))
