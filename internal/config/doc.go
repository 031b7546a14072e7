// Package config defines the format-agnostic variable model that feeds
// $(swix.var.NAME) and $(swix.env.NAME) references, along with the Loader
// interface for reading variable files.
//
// Concrete loaders, such as the HCL one, are provided in separate packages.
package config
