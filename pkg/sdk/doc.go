// Package askdb embeds the askdb question answering pipeline in a Go program.
//
// The client owns a SQLite database with the users table and the semantic
// knowledge base, and talks to an OpenAI-compatible model for classification,
// translation, embeddings and answer synthesis.
//
//	client, _ := askdb.New(ctx,
//	    askdb.WithDatabase("data/askdb.db"),
//	    askdb.WithOpenAI("https://api.openai.com/v1", os.Getenv("OPENAI_API_KEY")),
//	)
//	defer client.Close()
//
//	_, _ = client.Seed(ctx, usersJSON)
//	_, _ = client.Index(ctx)
//	answer, _ := client.Ask(ctx, "How many users are from India?")
//	fmt.Println(answer.Text, answer.Strategy)
//
// Custom model backends plug in through WithCompleter and WithEmbedder.
package askdb
