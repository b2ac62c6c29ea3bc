package toolcase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greetArgs struct {
	Name string `json:"name" description:"Who to greet"`
}

type greetResult struct {
	Greeting string `json:"greeting"`
}

func greet(_ context.Context, args greetArgs) (greetResult, error) {
	return greetResult{Greeting: "hello " + args.Name}, nil
}

func TestNewTool(t *testing.T) {
	tool, err := NewTool("greet_user", "Greet a user by name", greet)
	require.NoError(t, err)
	assert.Equal(t, "GreetUser", tool.Name())
	assert.Equal(t, "Greet a user by name", tool.Description())

	params := tool.Parameters()
	require.Len(t, params, 1)
	assert.Equal(t, "name", params[0].Name)
	assert.True(t, params[0].Required)

	schema := tool.InputSchema()
	assert.Equal(t, "object", schema["type"])
	assert.Contains(t, schema, "properties")
}

func TestNewTool_EmptyNameOrDescription(t *testing.T) {
	_, err := NewTool("", "desc", greet)
	require.Error(t, err)
	assert.True(t, IsDefinitionError(err))

	_, err = NewTool("greet", "", greet)
	require.Error(t, err)
	assert.True(t, IsDefinitionError(err))
}

func TestNewTool_PropagatesParameterErrors(t *testing.T) {
	type bad struct {
		Name string `json:"name"`
	}
	_, err := NewTool("greet", "Greet", func(_ context.Context, _ bad) (string, error) {
		return "", nil
	})
	require.Error(t, err)
	assert.True(t, IsDefinitionError(err))
}

func TestNewTool_Options(t *testing.T) {
	tool, err := NewTool("greet", "Greet a user", greet,
		WithOutputDescription("A greeting string"),
		WithDeprecationMessage("use GreetUser instead"),
		WithRequiresAuth("google", "profile", "email"),
		WithRequiresSecrets("API_KEY", "api_key", "other"),
		WithRequiresMetadata("tenant_id"),
	)
	require.NoError(t, err)

	reqs := tool.Requirements()
	require.NotNil(t, reqs.Authorization)
	assert.Equal(t, "google", reqs.Authorization.Provider)
	assert.Equal(t, []string{"profile", "email"}, reqs.Authorization.Scopes)
	// Secret keys fold case and de-dupe.
	assert.Equal(t, []string{"api_key", "other"}, reqs.Secrets)
	assert.Equal(t, []string{"tenant_id"}, reqs.Metadata)

	assert.Equal(t, "A greeting string", tool.Output().Description)

	def := tool.definition(ToolkitInfo{Name: "Test", Version: "1.0.0"})
	assert.Equal(t, "use GreetUser instead", def.DeprecationMessage)
	assert.Equal(t, "Test.Greet@1.0.0", def.FullyQualifiedName)
}

func TestNewTool_AuthWithoutProvider(t *testing.T) {
	_, err := NewTool("greet", "Greet a user", greet, WithRequiresAuth(""))
	require.Error(t, err)
	assert.True(t, IsDefinitionError(err))
}

func TestNewTool_EmptySecretKey(t *testing.T) {
	_, err := NewTool("greet", "Greet a user", greet, WithRequiresSecrets("  "))
	require.Error(t, err)
	assert.True(t, IsDefinitionError(err))
}

func TestTool_Invoke_ValidatesAgainstSchema(t *testing.T) {
	tool, err := NewTool("greet", "Greet a user", greet)
	require.NoError(t, err)

	out, err := tool.invoke(context.Background(), map[string]any{"name": "ada"}, ToolContext{})
	require.NoError(t, err)
	assert.Equal(t, greetResult{Greeting: "hello ada"}, out)

	_, err = tool.invoke(context.Background(), map[string]any{"name": 42}, ToolContext{})
	require.Error(t, err)
	assert.True(t, IsInputError(err))
}

func TestTool_Invoke_ArrayEnumParameter(t *testing.T) {
	type args struct {
		Modes []string `json:"modes" description:"Render modes" enum:"fast,full"`
	}
	tool, err := NewTool("render", "Render with the given modes", func(_ context.Context, a args) (int, error) {
		return len(a.Modes), nil
	})
	require.NoError(t, err)

	out, err := tool.invoke(context.Background(), map[string]any{"modes": []any{"fast", "full"}}, ToolContext{})
	require.NoError(t, err)
	assert.Equal(t, 2, out)

	_, err = tool.invoke(context.Background(), map[string]any{"modes": []any{"turbo"}}, ToolContext{})
	require.Error(t, err)
	assert.True(t, IsInputError(err))
}

type rangeArgs struct {
	Low  int `json:"low" description:"Lower bound"`
	High int `json:"high" description:"Upper bound"`
}

func (a rangeArgs) Validate() error {
	if a.Low > a.High {
		return errors.New("low must not exceed high")
	}
	return nil
}

func TestTool_Invoke_CustomValidation(t *testing.T) {
	tool, err := NewTool("pick", "Pick a number in a range", func(_ context.Context, a rangeArgs) (int, error) {
		return a.Low, nil
	})
	require.NoError(t, err)

	_, err = tool.invoke(context.Background(), map[string]any{"low": 9, "high": 1}, ToolContext{})
	require.Error(t, err)
	assert.True(t, IsInputError(err))
	assert.Contains(t, err.Error(), "low must not exceed high")
}

func TestNewContextTool_ReceivesContext(t *testing.T) {
	tool, err := NewContextTool("whoami", "Return the calling user",
		func(_ context.Context, tctx ToolContext, _ struct{}) (string, error) {
			if tctx.Authorization == nil {
				return "anonymous", nil
			}
			return tctx.Authorization.UserID, nil
		})
	require.NoError(t, err)

	out, err := tool.invoke(context.Background(), map[string]any{}, ToolContext{
		Authorization: &AuthorizationContext{UserID: "u-1", Token: "tok"},
	})
	require.NoError(t, err)
	assert.Equal(t, "u-1", out)
}
