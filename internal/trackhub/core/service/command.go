package service

import (
	"context"

	"github.com/fleetglass/fleetglass/internal/pkg/metrics"
	"github.com/fleetglass/fleetglass/internal/trackhub/core/model"
)

// IssueCommand stores a latest-wins command for the vehicle and returns
// immediately. The command is mirrored to observers and, when a push
// channel is configured, forwarded to the vehicle's command topic.
// Push failures are logged, not returned: the vehicle will still pick the
// command up on its next poll.
func (s *Service) IssueCommand(ctx context.Context, vehicleID, name string, params map[string]string) (*model.Command, error) {
	cmd := s.relay.Issue(vehicleID, name, params)
	metrics.CommandsIssued.WithLabelValues(name).Inc()

	s.hub.Publish(&model.Event{
		Type: model.EventCommand,
		Data: cmd,
	})

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, cmd); err != nil {
			s.logger.Error(err, "Failed to push command, vehicle will poll", "vehicle", vehicleID, "command", name)
		}
	}

	s.logger.Info("Command issued", "vehicle", vehicleID, "command", name, "id", cmd.ID)
	return cmd, nil
}

// PollCommand hands out the pending command for the vehicle, if any,
// clearing the slot. Called by the transport when a vehicle checks in.
func (s *Service) PollCommand(vehicleID string) (*model.Command, bool) {
	cmd, ok := s.relay.Poll(vehicleID)
	if ok {
		metrics.CommandsDelivered.Inc()
		s.logger.Debug("Command delivered", "vehicle", vehicleID, "command", cmd.Name)
	}
	return cmd, ok
}
