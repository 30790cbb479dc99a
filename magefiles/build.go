//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Tidies the module and builds the mechrig binary into bin/.
func (Build) Binary() error {
	if err := goTidy(); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("build", "-o", "bin/mechrig", "."), withStream())
	return err
}

type Test mg.Namespace

// Runs every package test with the race detector. Config files and env
// overrides of the developer's shell are ignored.
func (Test) All() error {
	_, err := executeCmd("go", withArgs("test", "-race", "-count=1", "./..."), withEnv("CGO_ENABLED=1", "MECHRIG_CONFIG="), withStream())
	return err
}

// Runs the tests of one package directory, e.g. mage test:pkg engine/rig.
func (Test) Pkg(dir string) error {
	_, err := executeCmd("go", withArgs("test", "-count=1", "-v", "./"+dir+"/..."), withStream())
	return err
}
