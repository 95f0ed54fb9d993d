// Package i8n provides a client-side translation cache for Pumpwood services.
//
// A Translator resolves (sentence, tag, plural, language, user type) lookups
// against a pluggable cache and, on a miss, asks a translation backend. When
// no backend is configured or the backend fails, the original sentence is
// returned unchanged and a warning is logged; Translate never fails.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/i8n"
//	    "github.com/ZaguanLabs/i8n/backend"
//	)
//
//	func main() {
//	    client := backend.NewPumpwoodClient(backend.PumpwoodConfig{
//	        BaseURL:  os.Getenv("PUMPWOOD__I8N__MICROSERVICE_URL"),
//	        Username: "i8n",
//	        Password: os.Getenv("PUMPWOOD__I8N__PASSWORD"),
//	    })
//
//	    t, err := i8n.NewTranslator(
//	        i8n.WithRemoteBackend(client),
//	        i8n.WithDefaultTag("ui"),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    fmt.Println(t.T(context.Background(), "Hello", i8n.WithLanguage("pt-BR")))
//	}
package i8n
