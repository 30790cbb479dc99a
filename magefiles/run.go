//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Imports one model descriptor with debug logging and writes scene.json.lz4.
func (Run) Import(descriptor string) error {
	mg.Deps(Build.Binary)
	fmt.Println("Importing", descriptor)
	_, err := executeCmd("bin/mechrig", withArgs("-log-level", "debug", "-out", "scene.json.lz4", descriptor), withStream())
	return err
}

// Watches a model descriptor and re-imports it on change.
func (Run) Watch(descriptor string) error {
	mg.Deps(Build.Binary)
	_, err := executeCmd("bin/mechrig", withArgs("-watch", descriptor), withStream())
	return err
}
