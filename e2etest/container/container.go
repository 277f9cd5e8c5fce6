package container

import (
	"fmt"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"github.com/carbonpledge-labs/token-economy-engine/testutil"
)

const (
	MongoUsername    = "user"
	MongoPassword    = "password"
	RabbitMQUsername = "user"
	RabbitMQPassword = "password"
)

// Manager is a wrapper around all Docker instances, and the Docker API.
// It provides utilities to run and interact with all Docker containers used within e2e testing.
type Manager struct {
	cfg       ImageConfig
	pool      *dockertest.Pool
	resources map[string]*dockertest.Resource
}

// NewManager creates a new Manager instance and initializes
// all Docker specific utilities. Returns an error if initialization fails.
func NewManager(t *testing.T) (*Manager, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, err
	}
	m := &Manager{
		cfg:       NewImageConfig(),
		pool:      pool,
		resources: make(map[string]*dockertest.Resource),
	}
	t.Cleanup(m.ClearResources)
	return m, nil
}

func (m *Manager) Pool() *dockertest.Pool {
	return m.pool
}

// RunMongoResource starts a MongoDB container and returns its mapped port.
func (m *Manager) RunMongoResource(t *testing.T) (*dockertest.Resource, error) {
	return m.run(t, "mongo", &dockertest.RunOptions{
		Repository: m.cfg.MongoRepository,
		Tag:        m.cfg.MongoVersion,
		Env: []string{
			"MONGO_INITDB_ROOT_USERNAME=" + MongoUsername,
			"MONGO_INITDB_ROOT_PASSWORD=" + MongoPassword,
		},
	})
}

// RunRabbitMQResource starts a RabbitMQ broker.
func (m *Manager) RunRabbitMQResource(t *testing.T) (*dockertest.Resource, error) {
	return m.run(t, "rabbitmq", &dockertest.RunOptions{
		Repository: m.cfg.RabbitMQRepository,
		Tag:        m.cfg.RabbitMQVersion,
		Env: []string{
			"RABBITMQ_DEFAULT_USER=" + RabbitMQUsername,
			"RABBITMQ_DEFAULT_PASS=" + RabbitMQPassword,
		},
	})
}

func (m *Manager) run(t *testing.T, name string, opts *dockertest.RunOptions) (*dockertest.Resource, error) {
	// there can be only 1 container with the same name, so we add
	// random string in the end in case there is still old container running
	suffix, err := testutil.RandomAlphaNum(4)
	if err != nil {
		return nil, err
	}
	opts.Name = fmt.Sprintf("e2e-%s-%s", name, suffix)

	resource, err := m.pool.RunWithOptions(opts, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		return nil, err
	}
	m.resources[name] = resource
	t.Logf("started %s container %s", name, opts.Name)
	return resource, nil
}

// ClearResources removes all outstanding Docker resources created by the Manager.
func (m *Manager) ClearResources() {
	for name, resource := range m.resources {
		if err := m.pool.Purge(resource); err != nil {
			fmt.Printf("failed to purge %s: %v\n", name, err)
		}
		delete(m.resources, name)
	}
}
