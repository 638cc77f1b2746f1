package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/slack-go/slack"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/ca-srg/maildraft/internal/config"
	"github.com/ca-srg/maildraft/internal/draft"
	"github.com/ca-srg/maildraft/internal/server"
)

type stubGenerator struct {
	got  string
	text string
	err  error
}

func (s *stubGenerator) Draft(ctx context.Context, instruction string) (string, error) {
	s.got = instruction
	return s.text, s.err
}

type stubAuthTester struct {
	resp *slack.AuthTestResponse
	err  error
}

func (s *stubAuthTester) AuthTestContext(ctx context.Context) (*slack.AuthTestResponse, error) {
	return s.resp, s.err
}

type stubSecrets struct {
	secret string
}

func (s *stubSecrets) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(s.secret)}, nil
}

func newTestCommand(stdin string) (*cobra.Command, *bytes.Buffer) {
	out := &bytes.Buffer{}
	c := &cobra.Command{}
	c.SetContext(context.Background())
	c.SetIn(strings.NewReader(stdin))
	c.SetOut(out)
	return c, out
}

func stubGeneratorFactory(t *testing.T, gen draft.Generator) {
	t.Helper()
	t.Setenv("STATS_DB_PATH", filepath.Join(t.TempDir(), "stats.db"))
	original := generatorFactory
	generatorFactory = func(ctx context.Context, cfg *appconfig.Config) (draft.Generator, error) {
		return gen, nil
	}
	t.Cleanup(func() { generatorFactory = original })
}

func TestRunDraftFromArgs(t *testing.T) {
	gen := &stubGenerator{text: "Hi Sam,\n\nFriday works.\n\nKind regards,\nJordan"}
	stubGeneratorFactory(t, gen)

	c, out := newTestCommand("")
	require.NoError(t, runDraft(c, []string{"Can", "we", "meet", "Friday?"}))

	assert.Equal(t, "Can we meet Friday?", gen.got)
	assert.Equal(t, gen.text+"\n", out.String())
}

func TestRunDraftFromStdin(t *testing.T) {
	gen := &stubGenerator{text: "draft"}
	stubGeneratorFactory(t, gen)

	c, out := newTestCommand("  Please confirm the invoice.\n")
	require.NoError(t, runDraft(c, nil))

	assert.Equal(t, "Please confirm the invoice.", gen.got)
	assert.Equal(t, "draft\n", out.String())
}

func TestRunDraftErrors(t *testing.T) {
	t.Run("empty instruction", func(t *testing.T) {
		stubGeneratorFactory(t, &stubGenerator{})
		c, _ := newTestCommand("   ")
		err := runDraft(c, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no instruction")
	})

	t.Run("generator failure", func(t *testing.T) {
		stubGeneratorFactory(t, &stubGenerator{err: errors.New("throttled")})
		c, out := newTestCommand("")
		err := runDraft(c, []string{"hello"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "drafting email: throttled")
		assert.Empty(t, out.String())
	})
}

func TestRunDraftRecordsUsageAndStatsPrintsIt(t *testing.T) {
	stubGeneratorFactory(t, &stubGenerator{text: "draft"})

	c, _ := newTestCommand("")
	require.NoError(t, runDraft(c, []string{"hello"}))

	c, out := newTestCommand("")
	require.NoError(t, runStats(c, nil))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"SOURCE", "OK", "ERRORS"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"slack", "0", "0"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"cli", "1", "0"}, strings.Fields(lines[2]))
}

func TestRunDraftWithStatsDisabled(t *testing.T) {
	stubGeneratorFactory(t, &stubGenerator{text: "draft"})
	t.Setenv("STATS_ENABLED", "false")

	c, out := newTestCommand("")
	require.NoError(t, runDraft(c, []string{"hello"}))
	assert.Equal(t, "draft\n", out.String())
	_, err := os.Stat(os.Getenv("STATS_DB_PATH"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunWhoami(t *testing.T) {
	original := authTesterFactory
	t.Cleanup(func() { authTesterFactory = original })

	t.Run("prints user id", func(t *testing.T) {
		t.Setenv(appconfig.EnvSlackBotToken, "xoxb-test")
		var gotToken string
		authTesterFactory = func(token string) authTester {
			gotToken = token
			return &stubAuthTester{resp: &slack.AuthTestResponse{UserID: "U0BOT"}}
		}

		c, out := newTestCommand("")
		require.NoError(t, runWhoami(c, nil))
		assert.Equal(t, "xoxb-test", gotToken)
		assert.Equal(t, "U0BOT\n", out.String())
	})

	t.Run("requires token", func(t *testing.T) {
		t.Setenv(appconfig.EnvSlackBotToken, "")
		c, _ := newTestCommand("")
		err := runWhoami(c, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), appconfig.EnvSlackBotToken)
	})

	t.Run("surfaces slack errors", func(t *testing.T) {
		t.Setenv(appconfig.EnvSlackBotToken, "xoxb-test")
		authTesterFactory = func(string) authTester {
			return &stubAuthTester{err: errors.New("invalid_auth")}
		}
		c, _ := newTestCommand("")
		err := runWhoami(c, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid_auth")
	})
}

func TestPrepareEnvironmentLoadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MAILDRAFT_DOTENV_PROBE=from-file\n"), 0o600))
	t.Chdir(dir)
	t.Setenv(appconfig.EnvSecretID, "")
	t.Cleanup(func() { _ = os.Unsetenv("MAILDRAFT_DOTENV_PROBE") })

	c, _ := newTestCommand("")
	require.NoError(t, prepareEnvironment(c, nil))
	assert.Equal(t, "from-file", os.Getenv("MAILDRAFT_DOTENV_PROBE"))
}

func TestPrepareEnvironmentAppliesSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(appconfig.EnvSecretID, "maildraft/prod")
	t.Setenv(appconfig.EnvSlackSigningSecret, "")

	original := secretsClientFactory
	secretsClientFactory = func(*cobra.Command) (appconfig.SecretsGetter, error) {
		return &stubSecrets{secret: `{"SLACK_SIGNING_SECRET":"from-secret"}`}, nil
	}
	t.Cleanup(func() { secretsClientFactory = original })

	c, _ := newTestCommand("")
	require.NoError(t, prepareEnvironment(c, nil))
	assert.Equal(t, "from-secret", os.Getenv(appconfig.EnvSlackSigningSecret))
}

func TestBuildServer(t *testing.T) {
	cfg := &appconfig.Config{
		SlackSigningSecret: "secret",
		SlackBotUserID:     "U123",
		ServerPort:         3000,
	}
	logger := log.New(io.Discard, "", 0)

	app, err := buildServer(cfg, slack.New("xoxb-test"), &stubGenerator{}, logger)
	require.NoError(t, err)
	require.NotNil(t, app.handler)
	require.NotNil(t, app.bot)

	rec := httptest.NewRecorder()
	app.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, server.HealthPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	cfg.SlackBotUserID = ""
	_, err = buildServer(cfg, slack.New("xoxb-test"), &stubGenerator{}, logger)
	require.Error(t, err)
}
