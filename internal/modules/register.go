package modules

import "github.com/forgepages/pipeline/internal/registry"

// RegisterDefaults registers every reference module type under reg. Call
// this before loading a declarative pipeline document that names them.
func RegisterDefaults(reg *registry.Registry) error {
	if err := reg.RegisterModule("static", NewStatic); err != nil {
		return err
	}
	if err := reg.RegisterModule("passthrough", NewPassthrough); err != nil {
		return err
	}
	if err := reg.RegisterModule("for_each", NewForEachFactory(reg)); err != nil {
		return err
	}
	if err := reg.RegisterModule("branch", NewBranchFactory(reg)); err != nil {
		return err
	}
	return nil
}
