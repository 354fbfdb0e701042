package main

import (
	"context"
	"fmt"
	"log"
	"os"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultEndpoint = "http://localhost:8080/mcp/stream"

func main() {
	ctx := context.Background()

	endpoint := os.Getenv("MCP_ENDPOINT")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "jobboard-test-client",
		Version: "0.2.0",
	}, nil)

	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{
		Endpoint: endpoint,
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer func() { _ = session.Close() }()

	log.Printf("Connected to server (session ID: %s)\n", session.ID())

	testListTools(ctx, session)
	testSearchFlow(ctx, session)
	testApplicationStatus(ctx, session)
	testDashboard(ctx, session)

	fmt.Println("\nAll tests completed")
}

func testListTools(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("\nTEST: list tools")

	res, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		log.Printf("list tools failed: %v", err)
		return
	}
	for _, tool := range res.Tools {
		fmt.Printf("- %s: %s\n", tool.Name, tool.Description)
	}
}

func testSearchFlow(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("\nTEST: job_search -> job_page -> job_history")

	steps := []*mcp.CallToolParams{
		{Name: "job_search", Arguments: map[string]any{"search": "golang", "location": "Remote"}},
		{Name: "job_page", Arguments: map[string]any{"direction": "next"}},
		{Name: "job_history", Arguments: map[string]any{"direction": "back"}},
		{Name: "top_companies", Arguments: map[string]any{"limit": 3}},
	}

	for _, params := range steps {
		if !call(ctx, session, params) {
			return
		}
	}
	fmt.Println("search flow passed")
}

func testApplicationStatus(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("\nTEST: cv_status + application_status")

	if !call(ctx, session, &mcp.CallToolParams{Name: "cv_status", Arguments: map[string]any{}}) {
		return
	}
	if !call(ctx, session, &mcp.CallToolParams{Name: "application_status", Arguments: map[string]any{}}) {
		return
	}
	fmt.Println("application status passed")
}

func testDashboard(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("\nTEST: interactions_refresh + dashboard")

	if !call(ctx, session, &mcp.CallToolParams{Name: "interactions_refresh", Arguments: map[string]any{}}) {
		return
	}
	if !call(ctx, session, &mcp.CallToolParams{Name: "dashboard", Arguments: map[string]any{}}) {
		return
	}
	fmt.Println("dashboard passed")
}

func call(ctx context.Context, session *mcp.ClientSession, params *mcp.CallToolParams) bool {
	result, err := session.CallTool(ctx, params)
	if err != nil {
		log.Printf("%s failed: %v", params.Name, err)
		return false
	}
	printResult(result)
	if result.IsError {
		log.Printf("%s returned a tool error", params.Name)
		return false
	}
	return true
}

func printResult(res *mcp.CallToolResult) {
	for _, c := range res.Content {
		if txt, ok := c.(*mcp.TextContent); ok {
			fmt.Println(txt.Text)
		}
	}
}
