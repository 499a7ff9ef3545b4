// Package wc provides the high-level client API for WCS working copies.
//
// A WorkingCopy handle wraps one engine session and two allocation arenas.
// Every mutating operation follows the same discipline: path arguments are
// canonicalized into the scratch arena, the engine is invoked through the
// session, and the scratch arena is cleared before the call returns,
// success or failure. Canonical path values therefore never outlive the
// operation that produced them.
//
// # Concurrency Safety
//
//   - A WorkingCopy is NOT safe for concurrent use: concurrent calls race
//     on the scratch arena and would corrupt in-flight canonical paths.
//     Serialize calls externally or give each goroutine its own handle.
//
//   - Handles for different working copies are fully independent.
//
// # Usage
//
//	handle, err := wc.Open("/path/to/checkout", wc.OpenOptions{})
//	if err != nil {
//	    // errclass.ErrContextCreation: no session, handle unusable
//	}
//	defer handle.Close()
//
//	err = handle.Add(ctx, "src/new.go", wc.AddOptions{})
//	err = handle.Copy(ctx, "a.txt", "b.txt", wc.CopyOptions{Rev: "HEAD"})
//	err = handle.Delete(ctx, wc.PathList("old.txt", "stale.txt"), wc.DeleteOptions{Force: true})
package wc
