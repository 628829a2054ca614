// Package orchestrate is the caller-facing seam of the resilience core.
//
// It composes the classifier and the retry engine, and converts the final
// ClassifiedError of a failed call into a CallError: the single error shape
// hosts consume, carrying a formatted message, a numeric code, fixed
// troubleshooting guidance per error type, and a two-valued Kind so the host
// can tell input mistakes (surface to the caller) from operational failures
// (log, alert, retry later).
//
// # Usage
//
//	orc := orchestrate.New(eng)
//	data, err := orc.Execute(ctx, "fetch posts", op)
//	if err != nil {
//	    var cerr *orchestrate.CallError
//	    if errors.As(err, &cerr) && cerr.Kind == orchestrate.KindCallerInput {
//	        // the caller must fix the request
//	    }
//	}
package orchestrate
