package handlers

import (
	"context"
	"fmt"

	"terrainforge/internal/jobstore"
)

// JobsList builds a handler listing jobs, optionally filtered by "status"
// and "type" and capped by "limit" (spec §4.3 List), for the terrainctl
// client's `jobs list` command.
func JobsList(store *jobstore.Store) func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		filter := jobstore.ListFilter{
			Status: jobstore.Status(stringArg(args, "status")),
			Type:   stringArg(args, "type"),
			Limit:  intArg(args, "limit"),
		}
		jobs := store.List(filter)
		return map[string]interface{}{"jobs": jobs}, nil
	}
}

// JobsGet builds a handler returning one job record by id.
func JobsGet(store *jobstore.Store) func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		id := stringArg(args, "job_id")
		if id == "" {
			return nil, fmt.Errorf("jobs_get: missing required argument 'job_id'")
		}
		job, err := store.Get(id)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"job": job}, nil
	}
}

// JobsCancel builds a handler cancelling a job by id, a no-op if it is
// already terminal (spec §4.3 Cancel).
func JobsCancel(store *jobstore.Store) func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		id := stringArg(args, "job_id")
		if id == "" {
			return nil, fmt.Errorf("jobs_cancel: missing required argument 'job_id'")
		}
		job, err := store.Cancel(id)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"job": job}, nil
	}
}

func stringArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

func intArg(args map[string]interface{}, key string) int {
	switch v := args[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
