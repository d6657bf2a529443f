package service

import (
	"projecthub.app/server/core/config"
	"projecthub.app/server/internal/queue"
	"projecthub.app/server/internal/service/github"
	"projecthub.app/server/internal/store"
)

type Services struct {
	stores    *store.Stores
	txRunner  TxRunner
	producer  queue.Producer
	newReader github.ClientFactory
	workOSCfg config.WorkOSConfig
}

func NewServices(
	stores *store.Stores,
	txRunner TxRunner,
	producer queue.Producer,
	newReader github.ClientFactory,
	workOSCfg config.WorkOSConfig,
) *Services {
	if newReader == nil {
		newReader = github.NewReader
	}
	return &Services{
		stores:    stores,
		txRunner:  txRunner,
		producer:  producer,
		newReader: newReader,
		workOSCfg: workOSCfg,
	}
}

func (s *Services) Auth() AuthService {
	return NewAuthService(s.stores.Users(), s.stores.Sessions(), s.workOSCfg)
}

func (s *Services) Users() UserService {
	return NewUserService(s.stores.Users())
}

func (s *Services) Projects() ProjectService {
	return NewProjectService(s.stores.Projects(), s.stores.RepoLinks(), s.stores.Collaborators(), s.txRunner)
}

func (s *Services) Applications() ApplicationService {
	return NewApplicationService(
		s.stores.Applications(),
		s.stores.Projects(),
		s.stores.Collaborators(),
		s.stores.Notifications(),
		s.txRunner,
	)
}

func (s *Services) Collaborators() CollaboratorService {
	return NewCollaboratorService(s.stores.Collaborators(), s.stores.Projects())
}

func (s *Services) Notifications() NotificationService {
	return NewNotificationService(s.stores.Notifications())
}

func (s *Services) ActivityIngest() *ActivityIngestService {
	return NewActivityIngestService(s.stores.RepoLinks(), s.stores.Activity(), s.producer)
}

func (s *Services) ActivityFeed() *ActivityFeedService {
	return NewActivityFeedService(s.newReader)
}

func (s *Services) RepoWatch() *RepoWatchService {
	return NewRepoWatchService(s.newReader)
}
