package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ctxKey struct{}

// recordCommand remembers the context and args it was executed with.
type recordCommand struct {
	cmd  *cobra.Command
	ctx  context.Context
	args []string
	err  error
}

func (r *recordCommand) Meta() *cobra.Command {
	if r.cmd == nil {
		r.cmd = &cobra.Command{Use: "record"}
	}
	return r.cmd
}

func (r *recordCommand) Execute(ctx context.Context, _ *cobra.Command, args []string) error {
	r.ctx = ctx
	r.args = args
	return r.err
}

func newTestCLI(ctx context.Context, args ...string) (*CLI, *bytes.Buffer) {
	c := NewCLI(ctx, "lanpeers", "test")
	out := new(bytes.Buffer)
	c.SetOutput(out, out)
	c.SetArgs(args)
	return c, out
}

func TestCLI_RunsPluginWithContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), ctxKey{}, "marker")
	c, _ := newTestCLI(ctx, "record", "alice", "bob")

	rec := &recordCommand{}
	c.RegisterPlugin(rec)

	require.NoError(t, c.Run())
	assert.Equal(t, []string{"alice", "bob"}, rec.args)
	require.NotNil(t, rec.ctx)
	assert.Equal(t, "marker", rec.ctx.Value(ctxKey{}))
}

func TestCLI_PropagatesPluginError(t *testing.T) {
	boom := errors.New("boom")
	c, _ := newTestCLI(context.Background(), "record")
	c.RegisterPlugin(&recordCommand{err: boom})

	assert.ErrorIs(t, c.Run(), boom)
}

func TestCLI_Completion(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{name: "Default bash", args: []string{"completion"}, want: "bash completion"},
		{name: "Zsh", args: []string{"completion", "zsh"}, want: "#compdef"},
		{name: "Unknown shell", args: []string{"completion", "tcsh"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, out := newTestCLI(context.Background(), tt.args...)
			c.RegisterPlugin(&recordCommand{})

			err := c.Run()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "Full", args: []string{"version"}, want: "lanpeers 1.2.3 (instance abc)\n"},
		{name: "Short", args: []string{"version", "--short"}, want: "1.2.3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, out := newTestCLI(context.Background(), tt.args...)
			c.RegisterPlugin(&VersionCommand{Version: "1.2.3", Instance: "abc"})

			require.NoError(t, c.Run())
			assert.Equal(t, tt.want, out.String())
		})
	}
}
