/*
Package domain contains the core domain models of the roster state container.

It defines the state tree, the actions that drive the reducer, and the errors
and events shared by every adapter. This package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - User: A record of the remote user collection.
  - UserForm: One of the two form slots (add, edit) with its derived validation.
  - State: The single application state tree (list, fetch status, forms).
  - Action: A request for one synchronous reducer transition.
  - StateDiff: The visible changes between two states, streamed to views.
*/
package domain
