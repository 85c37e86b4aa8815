package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/burnlist/burnlist/internal/domain"
	domainmocks "github.com/burnlist/burnlist/internal/domain/mocks"
	m "github.com/burnlist/burnlist/internal/model"
)

func TestWatchCmd_Defaults(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	useWorkflow(t, mockWorkflow)

	cmd, _ := newTestRootCmd(newWatchCmd())

	mockWorkflow.On("Watch", mock.Anything, domain.WatchArgs{
		RunArgs: domain.RunArgs{
			ScanArgs: domain.ScanArgs{Root: "addons", Parallel: 1},
			Format:   m.FormatText,
		},
		Debounce: 300 * time.Millisecond,
	}).Return(nil)

	cmd.SetArgs([]string{"watch", "addons"})
	require.NoError(t, cmd.Execute())
}

func TestWatchCmd_FlagsArePassedThrough(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	useWorkflow(t, mockWorkflow)

	cmd, _ := newTestRootCmd(newWatchCmd())

	mockWorkflow.On("Watch", mock.Anything, mock.MatchedBy(func(args domain.WatchArgs) bool {
		return args.Root == m.Path(".") &&
			args.Parallel == 2 &&
			args.Format == m.FormatYAML &&
			args.Debounce == time.Second
	})).Return(nil)

	cmd.SetArgs([]string{"watch", "--debounce", "1s", "--parallel", "2", "--format", "yaml"})
	require.NoError(t, cmd.Execute())
}

func TestWatchCmd_RejectsNonPositiveDebounce(t *testing.T) {
	useWorkflow(t, domainmocks.NewMockWorkflow(t))

	cmd, _ := newTestRootCmd(newWatchCmd())
	cmd.SetArgs([]string{"watch", "--debounce", "0s"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --debounce")
}
