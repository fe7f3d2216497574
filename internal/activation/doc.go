// Package activation computes whether project extensions are active and
// changes the settings that decide it.
//
// Three independent mechanisms can activate an extension: the enable-all
// flag, the explicit enabled list, and permission grants of the form
// <namespace>__<id>__<action>. Resolver evaluates them in that precedence
// order without touching the filesystem. Mutator applies state transitions
// as locked load-modify-save transactions against a settings.Store. Service
// combines both with an extension lister for callers such as the CLI.
package activation
