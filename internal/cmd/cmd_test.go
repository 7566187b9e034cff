package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dativo-io/piiredact/internal/config"
)

// executeCommand runs rootCmd with args and returns what it printed. Flag
// values and global Viper state are reset afterwards.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
		viper.Reset()
		config.SetDefaults(viper.GetViper())
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	expected := []string{
		"version",
		"redact",
		"serve",
		"rules",
		"config",
	}
	registered := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}
	for _, name := range expected {
		assert.True(t, registered[name], "subcommand %q should be registered", name)
	}
}

func TestRootCommand_HelpOutput(t *testing.T) {
	output, err := executeCommand(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, output, "personally identifiable information")
	assert.Contains(t, output, "redact")
	assert.Contains(t, output, "serve")
	assert.Contains(t, output, "rules")
}

func TestVersionVars_HaveDefaults(t *testing.T) {
	assert.Equal(t, "dev", Version)
	assert.Equal(t, "none", Commit)
	assert.Equal(t, "unknown", BuildDate)
}

func TestVersionCommand(t *testing.T) {
	output, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, output, "piiredact ")
	assert.Contains(t, output, "Commit: none")
	assert.Contains(t, output, "Go:")
}

func TestRootCommand_GlobalFlags(t *testing.T) {
	tests := []struct {
		name     string
		flagName string
	}{
		{"config flag", "config"},
		{"verbose flag", "verbose"},
		{"log-level flag", "log-level"},
		{"log-format flag", "log-format"},
		{"otel flag", "otel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := rootCmd.PersistentFlags().Lookup(tt.flagName)
			assert.NotNil(t, flag, "flag %q should be registered", tt.flagName)
		})
	}
}

func TestRootCommand_UseAndShort(t *testing.T) {
	assert.Equal(t, "piiredact", rootCmd.Use)
	assert.Equal(t, "Detect and redact PII in JSON records", rootCmd.Short)
}

func TestPackageLevelTracer_IsNotNil(t *testing.T) {
	assert.NotNil(t, tracer, "package-level tracer should be initialized")
}

func TestRulesCommand(t *testing.T) {
	output, err := executeCommand(t, "rules")
	require.NoError(t, err)

	assert.Contains(t, output, "RULE")
	assert.Contains(t, output, "phone")
	assert.Contains(t, output, "device_context")
	assert.Contains(t, output, "ip_address, device_id")
	assert.Contains(t, output, "Escalation threshold: 2")
	assert.Less(t, bytes.Index([]byte(output), []byte("phone")), bytes.Index([]byte(output), []byte("aadhar")),
		"rules are listed in priority order")
}
