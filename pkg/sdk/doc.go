// Package archon provides a Go client for the archon knowledge-backend
// HTTP API.
//
// The client covers semantic retrieval over the crawled knowledge base plus
// project and task management:
//
//	client, _ := archon.New("http://localhost:8080")
//	defer client.Close()
//
//	hits, _ := client.Search().Documents(ctx, "connection pooling", &archon.SearchOptions{
//	    MatchCount: 3,
//	    Filter:     map[string]string{"language": "go"},
//	})
//
//	project, _ := client.Projects().Create(ctx, "Knowledge Base", "github.com/example/kb")
//	task, _ := client.Tasks().Create(ctx, archon.TaskCreate{
//	    ProjectID: project.ID,
//	    Title:     "Crawl the docs site",
//	})
//
// Errors carry the server's code and message via *APIError and match the
// exported sentinels with errors.Is:
//
//	_, err := client.Projects().Get(ctx, 42)
//	if errors.Is(err, archon.ErrNotFound) { ... }
package archon
