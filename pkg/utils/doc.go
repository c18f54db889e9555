// Package utils provides small generic helpers shared across packages.
//
// Ptr is useful for the optional fields of option structs, which use pointers
// to tell an unset value from its zero value:
//
//	asset := assets.Asset{
//		Name:      "logo.png",
//		Content:   r,
//		Overwrite: utils.Ptr(false),
//	}
package utils
