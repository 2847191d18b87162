// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package evaluation scores a generated org chart against a ground-truth chart.

Names in the two charts rarely agree exactly, so MatchNames first aligns them into
a one-to-one partial mapping: prefix matches ("Vic" for "Victor Zhou") count at the
threshold score, fuzzy matches use a token-sort LCS ratio, and candidates are
accepted greedily from the highest score down.

Evaluator.Evaluate then reports coverage (matched / ground truth) and manager
accuracy over the matched pairs. Every matched pair gets exactly one verdict;
misses are classified as null_mismatch, wrong_manager or manager_not_in_mapping.
*/
package evaluation
