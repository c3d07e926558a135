package testutil

import (
	"io"
	"os"
	"path"

	"github.com/moerenett/toppbefaring-services/util"
	"github.com/op/go-logging"
)

func PathToTestData() string {
	return path.Join(util.ProjectRoot(), "testdata")
}

func PathToFixture(filename string) string {
	return path.Join(PathToTestData(), filename)
}

// SetTestEnv points the config loader at the repo's testdata
// directory, so tests build their Config from testdata/.env.test no
// matter what environment the developer's shell carries.
func SetTestEnv() {
	os.Setenv("TOPPBEFARING_CONFIG_DIR", PathToTestData())
	os.Setenv("TOPPBEFARING_CONFIG", "test")
}

// DiscardLogger returns a logger whose output goes nowhere. Tests that
// need a logger but assert nothing about log output use this to keep
// go test chatter down.
func DiscardLogger() *logging.Logger {
	log := logging.MustGetLogger("test")
	backend := logging.AddModuleLevel(logging.NewLogBackend(io.Discard, "", 0))
	log.SetBackend(backend)
	return log
}
