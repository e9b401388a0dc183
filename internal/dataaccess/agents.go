package dataaccess

import (
	"context"
	"net/http"

	"agency-service/internal/agent"
	"agency-service/internal/querycache"
)

type Agents struct{ s *Store }

type AgentUpdate struct {
	ID    int
	Agent agent.Agent
}

func agentKeys(id int) []string {
	keys := []string{querycache.ListKey("agents")}
	if id > 0 {
		keys = append(keys, querycache.ItemKey("agents", id))
	}
	return keys
}

func (q Agents) List(ctx context.Context) Result[[]agent.Agent] {
	return query[[]agent.Agent](ctx, q.s, querycache.ListKey("agents"))
}

func (q Agents) Create() *Mutation[agent.Agent, agent.Agent] {
	post := send[agent.Agent](q.s, http.MethodPost)
	return newMutation(q.s, "Agent created",
		func(ctx context.Context, in agent.Agent) (agent.Agent, error) {
			return post(ctx, querycache.ListKey("agents"), in)
		},
		func(agent.Agent, agent.Agent) []string { return agentKeys(0) },
	)
}

func (q Agents) Update() *Mutation[AgentUpdate, agent.Agent] {
	put := send[agent.Agent](q.s, http.MethodPut)
	return newMutation(q.s, "Agent updated",
		func(ctx context.Context, in AgentUpdate) (agent.Agent, error) {
			return put(ctx, idPath("agents", in.ID), in.Agent)
		},
		func(in AgentUpdate, _ agent.Agent) []string { return agentKeys(in.ID) },
	)
}

func (q Agents) Delete() *Mutation[int, struct{}] {
	return newMutation(q.s, "Agent deleted",
		func(ctx context.Context, id int) (struct{}, error) {
			return remove(ctx, q.s, "agents", id)
		},
		func(id int, _ struct{}) []string { return agentKeys(id) },
	)
}
