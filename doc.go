/*
Package roster is a single-store state container for a user-management console.

It holds one immutable state tree (the user list, its fetch status, two form
slots and the last request error), changes it only through a pure reducer, and
runs asynchronous workflows that talk to a remote user collection and dispatch
the resulting transitions.

# Concept

Views read snapshots and send actions; they never mutate state. Every
transition builds a new tree, so a snapshot handed out earlier stays valid
forever and readers never observe partial updates. Remote calls live in four
workflows (fetch, add, edit, delete); the collection itself is a port, so the
same engine runs against the HTTP client, the in-memory mock or a test fake.

# Key Features

  - Pure Transitions: Given the same state and action, the next state is always the same.
  - Hexagonal Architecture: The remote collection and the action journal are ports.
  - Observable: Lifecycle hooks, Prometheus metrics, state diffs and a bounded action journal.
  - Resilient Fetch: The list request is retried on network errors and transient statuses.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/roster"
		"github.com/aretw0/roster/pkg/adapters/rest"
		"github.com/aretw0/roster/pkg/domain"
	)

	func main() {
		eng, err := roster.New(roster.WithResource(rest.NewClient("http://localhost:3000")))
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		if err := eng.FetchUsers(ctx); err != nil {
			log.Fatal(err)
		}

		// Fill the add form, then submit it
		data := domain.UserFormData{Name: "Ann", Email: "ann@example.com"}
		if _, err := eng.Dispatch(ctx, domain.InputForm(domain.FormAddUser, data)); err != nil {
			log.Fatal(err)
		}
		if err := eng.SubmitAddUser(ctx); err != nil {
			log.Printf("submit failed: %v", err)
		}

		for _, u := range eng.State().List {
			log.Println(u.ID, u.Name)
		}
	}
*/
package roster
