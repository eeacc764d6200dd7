/*
Package observability turns tour lifecycle hooks into Prometheus metrics and
structured audit logs.

Both are plain domain.LifecycleHooks values, so they compose with each other and
with host hooks through guidepost.WithLifecycleHooks.
*/
package observability
