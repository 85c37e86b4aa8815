package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPythonFileAdapter_Parse(t *testing.T) {
	t.Run("valid source yields a module tree", func(t *testing.T) {
		a := NewLocalPythonFileAdapter()

		tree, err := a.Parse(context.Background(), []byte("def f(x):\n    return x + 1\n"))
		require.NoError(t, err)
		defer tree.Close()

		root := tree.RootNode()
		assert.Equal(t, "module", root.Type())
		assert.Equal(t, "function_definition", root.NamedChild(0).Type())
	})

	t.Run("broken source reports the failing line", func(t *testing.T) {
		a := NewLocalPythonFileAdapter()

		tree, err := a.Parse(context.Background(), []byte("x = 1\n\ndef f(:\n    pass\n"))
		require.Error(t, err)
		assert.Nil(t, tree)
		assert.True(t, errors.Is(err, ErrSyntax))

		var syntaxErr *SyntaxError
		require.True(t, errors.As(err, &syntaxErr))
		assert.Equal(t, 3, syntaxErr.Line)
	})
}

func TestLocalPythonFileAdapter_ParseTolerant(t *testing.T) {
	a := NewLocalPythonFileAdapter()

	tree, err := a.ParseTolerant(context.Background(), []byte("x = 1  # note\n\ndef f(:\n    pass\n"))
	require.NoError(t, err)
	require.NotNil(t, tree)
	defer tree.Close()

	root := tree.RootNode()
	assert.True(t, root.HasError())

	err = CheckSyntax(root)

	var syntaxErr *SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	assert.Equal(t, 3, syntaxErr.Line)
}

func TestCheckSyntax(t *testing.T) {
	tree, err := NewLocalPythonFileAdapter().ParseTolerant(context.Background(), []byte("x = 1\n"))
	require.NoError(t, err)
	defer tree.Close()

	assert.NoError(t, CheckSyntax(tree.RootNode()))
}
