package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/deskbothq/deskbot/internal/httputil"
	"github.com/deskbothq/deskbot/internal/types"
)

// Client commands talk to a running server over its local HTTP API.

func baseURL() string {
	return fmt.Sprintf("http://%s:%d", ServerConfig.Host, ServerConfig.Port)
}

func apiCall(method, path string, body, out any) error {
	client := &http.Client{Timeout: 150 * time.Second}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL()+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		if strings.Contains(err.Error(), "connection refused") {
			return fmt.Errorf("deskbot is not running (start it with 'deskbot serve')")
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var envelope httputil.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&envelope) == nil && envelope.Message != "" {
			return fmt.Errorf("%s", envelope.Message)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// StatusCmd reports agent and automation health
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show agent and automation health",
		Run: func(cmd *cobra.Command, args []string) {
			var resp types.BotStatusResponse
			if err := apiCall(http.MethodGet, "/api/v1/status", nil, &resp); err != nil {
				fail(err)
			}
			fmt.Printf("agent:      %s\n", upDown(resp.AgentReachable))
			fmt.Printf("automation: %s\n", upDown(resp.AutomationReady))
			if resp.LastError != "" {
				fmt.Printf("last error: %s\n", resp.LastError)
			}
		},
	}
}

func upDown(ok bool) string {
	if ok {
		return "ok"
	}
	return "unreachable"
}

// SendCmd sends one message and prints the reply
func SendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <message>",
		Short: "Send a message to the agent",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			var resp types.SendMessageResponse
			req := types.SendMessageRequest{Message: strings.Join(args, " ")}
			if err := apiCall(http.MethodPost, "/api/v1/messages", req, &resp); err != nil {
				fail(err)
			}
			fmt.Println(resp.Reply)
		},
	}
}

// HistoryCmd prints or clears the conversation log
func HistoryCmd() *cobra.Command {
	var clear bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the conversation history",
		Run: func(cmd *cobra.Command, args []string) {
			if clear {
				var resp types.ClearHistoryResponse
				if err := apiCall(http.MethodDelete, "/api/v1/messages", nil, &resp); err != nil {
					fail(err)
				}
				fmt.Printf("Cleared %d turns\n", resp.Cleared)
				return
			}
			var resp types.HistoryResponse
			if err := apiCall(http.MethodGet, "/api/v1/messages", nil, &resp); err != nil {
				fail(err)
			}
			for _, turn := range resp.Turns {
				fmt.Printf("[%d] %s: %s\n", turn.ID, turn.Role, turn.Content)
			}
		},
	}
	cmd.Flags().BoolVar(&clear, "clear", false, "clear the conversation history")
	return cmd
}

// DoCmd runs one automation action
func DoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "do <action>",
		Short: "Run an automation action",
		Long: `Run one automation action by name, e.g.:

  deskbot do screen_size
  deskbot do move_mouse --params '{"x": 100, "y": 200}'
  deskbot do type --params '{"text": "hello"}'`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			req := types.ExecuteAutomationRequest{Action: args[0]}
			if paramsArg != "" {
				req.Params = json.RawMessage(paramsArg)
			}
			var resp types.ExecuteAutomationResponse
			if err := apiCall(http.MethodPost, "/api/v1/automation", req, &resp); err != nil {
				fail(err)
			}
			fmt.Println(resp.Content)
		},
	}
	cmd.Flags().StringVar(&paramsArg, "params", "", "action parameters as a JSON object")
	return cmd
}

// ActionsCmd lists the automation catalog
func ActionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List available automation actions",
		Run: func(cmd *cobra.Command, args []string) {
			var resp types.ListActionsResponse
			if err := apiCall(http.MethodGet, "/api/v1/automation/actions", nil, &resp); err != nil {
				fail(err)
			}
			for _, action := range resp.Actions {
				params := ""
				if len(action.Params) > 0 {
					params = " (" + strings.Join(action.Params, ", ") + ")"
				}
				fmt.Printf("%-16s%s %s\n", action.Name, params, action.Description)
			}
		},
	}
}
