package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cicd/cmd/cicd/commands"
	"go.trai.ch/cicd/internal/app"
	"go.trai.ch/cicd/internal/build"
	"go.trai.ch/cicd/internal/core/domain"
)

type mockApp struct {
	global   *app.GlobalOptions
	synth    *app.SynthOptions
	deploy   *app.DeployOptions
	diff     *app.DiffOptions
	describe *app.DescribeOptions
	watch    *app.WatchOptions
	err      error
}

func (m *mockApp) Configure(opts app.GlobalOptions) error {
	m.global = &opts
	return nil
}

func (m *mockApp) Synth(_ context.Context, opts app.SynthOptions) ([]app.SynthResult, error) {
	m.synth = &opts
	return nil, m.err
}

func (m *mockApp) Deploy(_ context.Context, opts app.DeployOptions) ([]app.DeployOutcome, error) {
	m.deploy = &opts
	return nil, m.err
}

func (m *mockApp) Diff(_ context.Context, opts app.DiffOptions) ([]domain.TemplateDiff, error) {
	m.diff = &opts
	return nil, m.err
}

func (m *mockApp) Describe(_ context.Context, opts app.DescribeOptions) ([]app.DescribedPipeline, error) {
	m.describe = &opts
	return nil, m.err
}

func (m *mockApp) Watch(_ context.Context, opts app.WatchOptions) error {
	m.watch = &opts
	return m.err
}

func execute(t *testing.T, mock *mockApp, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(mock)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return buf.String(), err
}

func TestCommands_Synth(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		mock := &mockApp{}
		_, err := execute(t, mock, "synth", "--env", "dev", "-e", "prod", "--out", "s3://bucket", "--format", "yaml")
		require.NoError(t, err)

		require.NotNil(t, mock.synth)
		assert.Equal(t, []string{"dev", "prod"}, mock.synth.Stages)
		assert.Equal(t, "s3://bucket", mock.synth.Output)
		assert.Equal(t, "yaml", mock.synth.Format)
		assert.False(t, mock.synth.Stdout)
	})

	t.Run("defaults", func(t *testing.T) {
		mock := &mockApp{}
		_, err := execute(t, mock, "synth", "--stdout")
		require.NoError(t, err)

		require.NotNil(t, mock.synth)
		assert.Empty(t, mock.synth.Stages)
		assert.Equal(t, "json", mock.synth.Format)
		assert.True(t, mock.synth.Stdout)
	})

	t.Run("rejects arguments", func(t *testing.T) {
		mock := &mockApp{}
		_, err := execute(t, mock, "synth", "dev")
		require.Error(t, err)
		assert.Nil(t, mock.synth)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		mock := &mockApp{err: errors.New("simulated error")}
		_, err := execute(t, mock, "synth")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_GlobalFlags(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		mock := &mockApp{}
		_, err := execute(t, mock, "describe")
		require.NoError(t, err)

		require.NotNil(t, mock.global)
		assert.False(t, mock.global.JSON)
		assert.Empty(t, mock.global.DebugLog)
		assert.Equal(t, "auto", mock.global.OutputMode)
	})

	t.Run("json and output mode", func(t *testing.T) {
		mock := &mockApp{}
		_, err := execute(t, mock, "describe", "--json", "-o", "ci")
		require.NoError(t, err)

		assert.True(t, mock.global.JSON)
		assert.Equal(t, "ci", mock.global.OutputMode)
	})

	t.Run("debug log without a value uses the default path", func(t *testing.T) {
		mock := &mockApp{}
		_, err := execute(t, mock, "describe", "--debug-log")
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultDebugLogPath(), mock.global.DebugLog)
	})

	t.Run("debug log with a value", func(t *testing.T) {
		mock := &mockApp{}
		_, err := execute(t, mock, "describe", "--debug-log=/tmp/cicd.log")
		require.NoError(t, err)
		assert.Equal(t, "/tmp/cicd.log", mock.global.DebugLog)
	})
}

func TestCommands_Deploy(t *testing.T) {
	t.Run("waits by default", func(t *testing.T) {
		mock := &mockApp{}
		_, err := execute(t, mock, "deploy", "-e", "prod")
		require.NoError(t, err)

		require.NotNil(t, mock.deploy)
		assert.Equal(t, []string{"prod"}, mock.deploy.Stages)
		assert.True(t, mock.deploy.Wait)
		assert.Equal(t, app.DefaultDeployTimeout, mock.deploy.Timeout)
	})

	t.Run("no wait and timeout", func(t *testing.T) {
		mock := &mockApp{}
		_, err := execute(t, mock, "deploy", "--no-wait", "--timeout", "5m")
		require.NoError(t, err)

		assert.False(t, mock.deploy.Wait)
		assert.Equal(t, 5*time.Minute, mock.deploy.Timeout)
	})
}

func TestCommands_Diff(t *testing.T) {
	mock := &mockApp{err: domain.ErrDriftDetected}
	_, err := execute(t, mock, "diff", "--fail", "--env", "dev")
	require.ErrorIs(t, err, domain.ErrDriftDetected)

	require.NotNil(t, mock.diff)
	assert.True(t, mock.diff.Fail)
	assert.Equal(t, []string{"dev"}, mock.diff.Stages)
}

func TestCommands_Describe(t *testing.T) {
	mock := &mockApp{}
	_, err := execute(t, mock, "describe", "--env", "dev,prod")
	require.NoError(t, err)

	require.NotNil(t, mock.describe)
	assert.Equal(t, []string{"dev", "prod"}, mock.describe.Stages)
}

func TestCommands_Watch(t *testing.T) {
	mock := &mockApp{}
	_, err := execute(t, mock, "watch", "-e", "dev", "--format", "yaml", "--debounce", "1s")
	require.NoError(t, err)

	require.NotNil(t, mock.watch)
	assert.Equal(t, []string{"dev"}, mock.watch.Synth.Stages)
	assert.Equal(t, "yaml", mock.watch.Synth.Format)
	assert.Equal(t, time.Second, mock.watch.Debounce)
}

func TestCommands_Version(t *testing.T) {
	mock := &mockApp{}
	out, err := execute(t, mock, "version")
	require.NoError(t, err)

	assert.Contains(t, out, "cicd version "+build.Version)
}

func TestCommands_VersionFlag(t *testing.T) {
	mock := &mockApp{}
	out, err := execute(t, mock, "--version")
	require.NoError(t, err)

	assert.Contains(t, out, build.Version)
	assert.Contains(t, out, build.Commit)
}
