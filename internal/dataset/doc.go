// Package dataset implements fly-vr's hierarchical dataset store: the
// storage backend the log server mutates on behalf of producers.
//
// # Overview
//
// A recording container holds named, '/'-delimited datasets. Each dataset is
// a dense numeric array with an explicit dtype, a current shape, an optional
// max shape bounding growth (Unlimited marks growable axes), advisory chunk
// shape, per-row compression (snappy) and checksums, and a fill value for
// rows that were never written. Alongside datasets, encoded mapping leaves
// hold scalar metadata (strings, flags, small lists) flattened out of
// nested-mapping log events.
//
// Persistence is one Pebble keyspace:
//   - dsm/{path}               descriptor JSON
//   - dsr/{path}\x00{row_be8}  stored rows
//   - leaf/{path}              encoded mapping leaves
//
// API surface (internal)
//
//	st := dataset.New(db)
//	created, _ := st.Create("/fictrac/output", dataset.Spec{
//	    Shape:    []int{0, 24},
//	    MaxShape: []int{dataset.Unlimited, 24},
//	    Dtype:    dataset.DtypeFloat64,
//	})
//	_ = st.Resize("/fictrac/output", 8)
//	_ = st.WriteRows("/fictrac/output", 0, frame)
//	all, _ := st.ReadAll("/fictrac/output")
//
// The store performs no locking of its own: the log server is its only
// caller, and the container's directory lock excludes other processes.
package dataset
