package queue

import (
	"encoding/json"

	"github.com/rabbitmq/amqp091-go"
)

// AnalyzeMsg asks a worker to run the full analysis pipeline for one
// repository.
type AnalyzeMsg struct {
	RepositoryID string `json:"repository_id"`
	URL          string `json:"url"`
}

func PublishAnalyze(ch *amqp091.Channel, msg AnalyzeMsg) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return PublishFIFO(ch, AnalyzeQueue, data)
}
