package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	root := Root()

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "pods", "gpus", "cost", "version"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestPodsSubcommands(t *testing.T) {
	pods := Pods()

	names := make(map[string]bool)
	for _, c := range pods.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"list", "create", "terminate", "resume", "logs", "watch"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestCreateFlags(t *testing.T) {
	create := podsCreate()

	for _, flag := range []string{"gpu", "model", "custom-node", "public-ip", "on-demand", "container-disk", "volume-disk", "port", "json"} {
		assert.NotNil(t, create.Flags().Lookup(flag), "missing flag %q", flag)
	}

	require.NotNil(t, create.Args)
	assert.Error(t, create.Args(create, nil), "NAME argument should be required")
}

func TestServeFlags(t *testing.T) {
	serve := Serve()
	assert.NotNil(t, serve.Flags().Lookup("config"))
	assert.NotNil(t, serve.Flags().Lookup("verbosity"))
}

func TestVersionOutput(t *testing.T) {
	SetVersionInfo("1.2.3", "abc", "today")
	assert.Equal(t, "1.2.3", VersionString())
}
