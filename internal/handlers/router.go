package handlers

import (
	"net/http"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	userHandler *UserHandler,
	todoHandler *TodoHandler,
	authMiddleware func(http.Handler) http.Handler,
	loggerMiddleware func(http.Handler) http.Handler,
) http.Handler {
	withAuth := authMiddleware

	users := http.NewServeMux()
	users.Handle("POST /register", http.HandlerFunc(userHandler.register))
	users.Handle("POST /login", http.HandlerFunc(userHandler.login))
	users.Handle("PATCH /refresh-access-token", http.HandlerFunc(userHandler.refresh))
	users.Handle("POST /logout", withAuth(http.HandlerFunc(userHandler.logout)))
	users.Handle("DELETE /delete", withAuth(http.HandlerFunc(userHandler.deleteAccount)))

	todos := http.NewServeMux()
	todos.Handle("GET /{$}", withAuth(http.HandlerFunc(todoHandler.list)))
	todos.Handle("POST /add", withAuth(http.HandlerFunc(todoHandler.create)))
	todos.Handle("PUT /update/{id}", withAuth(http.HandlerFunc(todoHandler.update)))
	todos.Handle("PATCH /status/{id}", withAuth(http.HandlerFunc(todoHandler.setStatus)))
	todos.Handle("DELETE /delete/{id}", withAuth(http.HandlerFunc(todoHandler.delete)))

	root := http.NewServeMux()
	root.Handle("/users/", http.StripPrefix("/users", users))
	root.Handle("/todos/", http.StripPrefix("/todos", todos))
	// GET /todos without trailing slash should not 301 through the subtree redirect
	root.Handle("GET /todos", withAuth(http.HandlerFunc(todoHandler.list)))

	return chain(root, loggerMiddleware)
}
