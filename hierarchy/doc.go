// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package hierarchy assembles raw manager assertions into a management hierarchy.

# Overview

The inference stage produces one Assertion per person: who the person's manager
probably is (or none) and why. Assertions are noisy, so the resulting manager graph
may contain cycles and dangling edges. This package detects every cycle reachable
through manager edges and repairs them with an injected Oracle until the graph is a
forest of rooted trees.

# Core types

  - Assertion  — name, manager (empty for none) and reasoning from inference
  - Role       — title and project for a person, from a separate inference stage
  - Directory  — explicit people lookup service built from roles
  - Graph      — insertion-ordered functional graph name → manager
  - Cycle      — ordered cycle members in manager-link order
  - Oracle     — external reasoning service that proposes corrected edges
  - Normalizer — detect / resolve / re-detect loop with a pass budget

# Errors

A resolution that changes nothing or names an unknown manager is a ResolutionError
and is retried up to Config.MaxAttempts times. Cycles left after Config.MaxPasses
passes surface as *UnresolvedCycleError carrying the remaining cycles.
*/
package hierarchy
