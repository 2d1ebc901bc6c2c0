package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/driveingestflow/internal/models"
	"github.com/Lllllllleong/driveingestflow/internal/services"
	cloudevents "github.com/cloudevents/sdk-go/v2" // The official CloudEvents SDK
)

var (
	ingesterInstance *services.IngesterFunction
	once             sync.Once
	initErr          error
)

// pubSubEnvelope is the CloudEvent data payload delivered for a Pub/Sub
// trigger. The message data itself is optional scheduler metadata.
type pubSubEnvelope struct {
	Message struct {
		Data []byte `json:"data"`
	} `json:"message"`
}

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Register the CloudEvent function. The framework will handle routing the event here.
	functions.CloudEvent("IngestOnSchedule", ingestOnSchedule)
}

// main is required by the Go Functions Framework.
func main() {}

// ingestOnSchedule is the Cloud Function entry point for Pub/Sub-delivered
// scheduler ticks.
func ingestOnSchedule(ctx context.Context, e cloudevents.Event) error {
	// Use sync.Once for robust, one-time initialization of clients.
	once.Do(func() {
		ingesterInstance, initErr = services.NewIngester(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	// The Pub/Sub message may carry an IngestRequest; a tick with no usable
	// payload still triggers a run, identified by the event ID.
	req := models.IngestRequest{ExecutionID: e.ID()}
	var envelope pubSubEnvelope
	if err := json.Unmarshal(e.Data(), &envelope); err == nil && len(envelope.Message.Data) > 0 {
		if err := json.Unmarshal(envelope.Message.Data, &req); err != nil {
			slog.Warn("Ignoring unparseable scheduler payload.", "error", err, "eventId", e.ID())
		}
		if req.ExecutionID == "" {
			req.ExecutionID = e.ID()
		}
	}

	_, err := ingesterInstance.Process(ctx, &req)
	if err != nil {
		// The error is already logged with context within the Process method.
		// Returning it marks the function invocation as failed.
		return err
	}

	return nil
}
