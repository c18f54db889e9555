// Package project manages a provkit working directory.
//
// A project is a directory containing a provkit.yaml file. The configuration
// names the template package commands operate on and the defaults applied to
// added files. It may also describe the site content was captured from, which
// enables tokenization:
//
//	project-root/
//	├── provkit.yaml    # Project configuration
//	└── template.pnp    # Template package
//
// Initialize is idempotent. It only creates the configuration and the template
// package when they are missing, preserving existing content.
//
// # Usage Example
//
//	proj := project.New("/path/to/project")
//	if err := proj.Initialize(project.InitOptions{}); err != nil {
//		log.Fatal("Failed to initialize project:", err)
//	}
//
//	path, err := proj.TemplatePath("")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	tmpl, err := provider.Load(path)
package project
