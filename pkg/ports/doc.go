/*
Package ports defines the driven ports (interfaces) of the roster state container.

These interfaces decouple the store and its workflows from external
implementations, allowing the console to work with any transport and any
journal backend.

# Key Interfaces

  - UserResource: The remote user collection (list, create, update, delete).
  - ActionJournal: A bounded history of dispatched actions (memory or Redis).
*/
package ports
