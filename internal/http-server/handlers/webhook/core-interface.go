package webhook

import "zapdesk/entity"

type Core interface {
	HandleWebhook(instanceName string, env *entity.WebhookEnvelope) error
}
