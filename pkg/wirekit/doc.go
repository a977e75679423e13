/*
Package wirekit connects typed components with declarative actions.

# Overview

wirekit is a Go library for wiring component instances into a dataflow
graph. Components publish typed ports; connections carry values between
ports, optionally through transforms; a declarative action interpreter
reacts to events; and behaviors attach reusable state machines to
instances. It is designed for embedding in visual-builder hosts where a
user assembles a layout and the engine keeps the pieces talking.

# Basic Usage

Create an engine, publish a component kind, register instances, and wire
them up:

	engine := wirekit.New()
	defer engine.Close()

	engine.PublishSchema("button", component.Capability{
	    Name: "emit",
	    Ports: []component.Port{{
	        ID: "click", Name: "Click",
	        DataType: component.TypeNumber, Direction: component.DirOutput,
	    }},
	})
	engine.PublishSchema("display", component.Capability{
	    Name: "show",
	    Ports: []component.Port{{
	        ID: "display", Name: "Display",
	        DataType: component.TypeText, Direction: component.DirInput,
	    }},
	})

	engine.Register(component.NewInstance("btn", "button"))
	engine.Register(component.NewInstance("out", "display"))

	if _, err := engine.Connect("btn", "click", "out", "display", ""); err != nil {
	    log.Fatal(err)
	}
	engine.Emit(context.Background(), "btn", "click", 7)
	fmt.Println(engine.Selector()("out").Value()) // 7

Connections are validated against the port schema: the source must be
able to send, the target must be able to receive, and the data types
must be compatible (identity plus the widenings number→text,
boolean→text, text→object, object→anything).

# Auto-Wiring

AutoWire proposes connections heuristically, pairing output ports with
input ports whose names or descriptions suggest they belong together:

	created := engine.AutoWire(context.Background())

The matcher is pluggable; see the connection package's Scorer interface.

# Declarative Actions

Events run declarative action lists instead of code:

	actions := action.DecodeActions([]any{
	    map[string]any{"type": "getValue", "target": "input", "store": "v"},
	    map[string]any{"type": "setValue", "target": "out",
	        "value": map[string]any{"concat": []any{"got: ", "$v"}}},
	})
	engine.ExecuteActions(context.Background(), actions, nil)

Action execution is fail-soft: a failing step logs and yields nil, and
its siblings still run. Expression evaluation never errors outward;
division by zero and unknown references resolve to nil.

# Definitions

A component tree can be loaded from YAML or JSON:

	def, err := wirekit.LoadDefinitionFile("layout.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	root, err := engine.Instantiate(def)

Definition methods are either declarative action lists or legacy code
strings; legacy strings are bridged through an optional LegacyRunner and
otherwise log a deprecation notice.

# Layout Snapshots

With a snapshot store configured, a wired layout can be saved and
restored:

	st, _ := store.NewSQLiteStore("./layouts.db")
	defer st.Close()
	engine := wirekit.New(wirekit.WithStore(st))

	engine.SaveLayout("main")
	// later, possibly in a new process
	engine.LoadLayout("main")

# Configuration

Engine settings can come from a YAML or JSON file:

	cfg, _ := config.FromFile("wirekit.yaml")
	engine := wirekit.New(wirekit.WithConfig(cfg))

Recognized keys cover the session ID, expression depth, a SQLite layout
store path, and the auto-wiring matcher's keyword rules. Explicit options
win over config values.

# Observability

Structured logging uses log/slog throughout. OpenTelemetry metrics and
tracing are opt-in:

	engine := wirekit.New(
	    wirekit.WithLogger(logger),
	    wirekit.WithMetrics(true),
	    wirekit.WithTracing(true),
	)

Metrics: wirekit.connection.ops, wirekit.propagation.edges,
wirekit.action.executions, wirekit.autowire.created, and friends.
Spans: wirekit.emit, wirekit.actions, wirekit.autowire.

# Thread Safety

  - Engine IS safe for concurrent use.
  - Registry, connection Manager, and behavior Manager iterate over
    snapshots, so handlers may mutate the graph reentrantly.
  - component.Instance accessors are individually safe; the cooperative
    model assumes a single logical writer.

# Subpackages

  - component: port/capability schema and live instances
  - registry: instance registry and event handler bookkeeping
  - connection: typed connection graph and auto-wiring matcher
  - action: declarative action and expression interpreter
  - behavior: attachable state machines (toggle)
  - schedule: timer facility behind an interface
  - store: layout snapshot storage (memory, SQLite)
  - config: typed access over option maps, YAML/JSON loading
  - observability: logging, metrics, and tracing helpers
*/
package wirekit
