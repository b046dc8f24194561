package jobs

import "os"

// applyRetention deletes artifact files the submitter did not ask to
// retain. It runs once per terminal transition, before the final
// persist, using the job's own params captured at submission. Deletion
// is best-effort by design: a missing file or a removal fault must
// never mask the job's own outcome.
func applyRetention(job *Job) {
	if !job.Params.RetainExportFiles {
		for _, path := range job.Result.GeneratedFiles {
			removeFileIfExists(path)
		}
		job.Result.GeneratedFiles = map[string]string{}
	}

	source, audio := job.SourcePath, job.AudioPath

	// Pure-audio uploads share one file for both roles; delete it once
	// only when neither retention flag asks for it.
	if source != "" && source == audio {
		if !job.Params.RetainSourceFiles && !job.Params.RetainProcessedAudio {
			removeFileIfExists(source)
			job.SourcePath = ""
			job.AudioPath = ""
		}
		return
	}

	if source != "" && !job.Params.RetainSourceFiles {
		removeFileIfExists(source)
		job.SourcePath = ""
	}
	if audio != "" && !job.Params.RetainProcessedAudio {
		removeFileIfExists(audio)
		job.AudioPath = ""
	}
}

func removeFileIfExists(path string) {
	if path == "" {
		return
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return
	}
	_ = os.Remove(path)
}
